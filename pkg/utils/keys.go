package utils

import "fmt"

func PublishedAssetKey(chainId uint64, publisher string) string {
	return fmt.Sprintf("ocean_df:asset:%d:%s", chainId, publisher)
}

func LastClaimKey(chainId uint64, wallet string) string {
	return fmt.Sprintf("ocean_df:claim:%d:%s", chainId, wallet)
}
