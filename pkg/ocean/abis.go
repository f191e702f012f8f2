package ocean

// 只包含本项目调用到的方法与事件

const erc20ABI = `[
{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"decimals","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]},
{"type":"function","name":"symbol","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
{"type":"function","name":"allowance","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"approve","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"value","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
{"type":"function","name":"transfer","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"},{"name":"value","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
{"type":"function","name":"mint","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"},{"name":"value","type":"uint256"}],"outputs":[]}
]`

const veOceanABI = `[
{"type":"function","name":"create_lock","stateMutability":"nonpayable","inputs":[{"name":"_value","type":"uint256"},{"name":"_unlock_time","type":"uint256"}],"outputs":[]},
{"type":"function","name":"increase_amount","stateMutability":"nonpayable","inputs":[{"name":"_value","type":"uint256"}],"outputs":[]},
{"type":"function","name":"withdraw","stateMutability":"nonpayable","inputs":[],"outputs":[]},
{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"addr","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"locked","stateMutability":"view","inputs":[{"name":"arg0","type":"address"}],"outputs":[{"name":"amount","type":"int128"},{"name":"end","type":"uint256"}]}
]`

const veAllocateABI = `[
{"type":"function","name":"setAllocation","stateMutability":"nonpayable","inputs":[{"name":"amount","type":"uint256"},{"name":"nft","type":"address"},{"name":"chainId","type":"uint256"}],"outputs":[]},
{"type":"function","name":"getTotalAllocation","stateMutability":"view","inputs":[{"name":"user","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"getveAllocation","stateMutability":"view","inputs":[{"name":"user","type":"address"},{"name":"nft","type":"address"},{"name":"chainid","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]}
]`

const feeDistributorABI = `[
{"type":"function","name":"claim","stateMutability":"nonpayable","inputs":[],"outputs":[{"name":"","type":"uint256"}]}
]`

const fixedRateExchangeABI = `[
{"type":"function","name":"getFeesInfo","stateMutability":"view","inputs":[{"name":"exchangeId","type":"bytes32"}],"outputs":[
  {"name":"marketFee","type":"uint256"},{"name":"marketFeeCollector","type":"address"},{"name":"opcFee","type":"uint256"},
  {"name":"marketFeeAvailable","type":"uint256"},{"name":"oceanFeeAvailable","type":"uint256"}]},
{"type":"function","name":"buyDT","stateMutability":"nonpayable","inputs":[
  {"name":"exchangeId","type":"bytes32"},{"name":"datatokenAmount","type":"uint256"},{"name":"maxBaseTokenAmount","type":"uint256"},
  {"name":"consumeMarketAddress","type":"address"},{"name":"consumeMarketSwapFeeAmount","type":"uint256"}],"outputs":[]}
]`

const datatokenABI = `[
{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"createFixedRate","stateMutability":"nonpayable","inputs":[
  {"name":"fixedPriceAddress","type":"address"},{"name":"addresses","type":"address[]"},{"name":"uints","type":"uint256[]"}],"outputs":[{"name":"exchangeId","type":"bytes32"}]},
{"type":"function","name":"startOrder","stateMutability":"nonpayable","inputs":[
  {"name":"consumer","type":"address"},{"name":"serviceIndex","type":"uint256"},
  {"name":"_providerFee","type":"tuple","components":[
    {"name":"providerFeeAddress","type":"address"},{"name":"providerFeeToken","type":"address"},{"name":"providerFeeAmount","type":"uint256"},
    {"name":"v","type":"uint8"},{"name":"r","type":"bytes32"},{"name":"s","type":"bytes32"},
    {"name":"validUntil","type":"uint256"},{"name":"providerData","type":"bytes"}]},
  {"name":"_consumeMarketFee","type":"tuple","components":[
    {"name":"consumeMarketFeeAddress","type":"address"},{"name":"consumeMarketFeeToken","type":"address"},{"name":"consumeMarketFeeAmount","type":"uint256"}]}],"outputs":[]}
]`

const dataNftABI = `[
{"type":"function","name":"setMetaData","stateMutability":"nonpayable","inputs":[
  {"name":"_metaDataState","type":"uint8"},{"name":"_metaDataDecryptorUrl","type":"string"},{"name":"_metaDataDecryptorAddress","type":"string"},
  {"name":"flags","type":"bytes"},{"name":"data","type":"bytes"},{"name":"_metaDataHash","type":"bytes32"},
  {"name":"_metadataProofs","type":"tuple[]","components":[
    {"name":"validatorAddress","type":"address"},{"name":"v","type":"uint8"},{"name":"r","type":"bytes32"},{"name":"s","type":"bytes32"}]}],"outputs":[]}
]`

const nftFactoryABI = `[
{"type":"function","name":"createNftWithErc20","stateMutability":"nonpayable","inputs":[
  {"name":"_NftCreateData","type":"tuple","components":[
    {"name":"name","type":"string"},{"name":"symbol","type":"string"},{"name":"templateIndex","type":"uint256"},
    {"name":"tokenURI","type":"string"},{"name":"transferable","type":"bool"},{"name":"owner","type":"address"}]},
  {"name":"_ErcCreateData","type":"tuple","components":[
    {"name":"templateIndex","type":"uint256"},{"name":"strings","type":"string[]"},{"name":"addresses","type":"address[]"},
    {"name":"uints","type":"uint256[]"},{"name":"bytess","type":"bytes[]"}]}],"outputs":[
  {"name":"erc721Address","type":"address"},{"name":"erc20Address","type":"address"}]}
]`
