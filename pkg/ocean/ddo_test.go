package ocean

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
)

func TestComputeDID(t *testing.T) {
	nft := common.HexToAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")
	sum := sha256.Sum256([]byte("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed8996"))

	did := ComputeDID(nft, 8996)
	assert.Equal(t, "did:op:"+hex.EncodeToString(sum[:]), did)
	assert.Len(t, strings.TrimPrefix(did, "did:op:"), 64)
	assert.NotEqual(t, did, ComputeDID(nft, 1))
}

func TestNewURLDDO(t *testing.T) {
	nft := common.HexToAddress("0x01")
	dt := common.HexToAddress("0x02")
	ddo := NewURLDDO(DDOParams{
		Name:            "Branin dataset",
		Author:          "0x90F8b",
		ChainID:         8996,
		NFT:             nft,
		Datatoken:       dt,
		EncryptedFiles:  "0x04ab",
		ServiceEndpoint: "http://localhost:8030",
		CreatedAt:       time.Date(2022, 11, 3, 10, 0, 0, 0, time.UTC),
	})

	assert.Equal(t, ComputeDID(nft, 8996), ddo.ID)
	assert.Equal(t, DDOVersion, ddo.Version)
	assert.Equal(t, "2022-11-03T10:00:00Z", ddo.Metadata.Created)
	assert.Equal(t, "dataset", ddo.Metadata.Type)
	if assert.Len(t, ddo.Services, 1) {
		svc := ddo.Services[0]
		assert.Equal(t, ServiceTypeAccess, svc.Type)
		assert.Equal(t, dt.Hex(), svc.DatatokenAddress)
		assert.Equal(t, "0x04ab", svc.Files)
	}
}
