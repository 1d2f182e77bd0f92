package source

// binanceSymbols maps CoinGecko coin ids to Binance USDT spot symbols.
// Only mapped coins can be served from the Binance source.
var binanceSymbols = map[string]string{
	"bitcoin":       "BTCUSDT",
	"ethereum":      "ETHUSDT",
	"binancecoin":   "BNBUSDT",
	"ripple":        "XRPUSDT",
	"cardano":       "ADAUSDT",
	"solana":        "SOLUSDT",
	"dogecoin":      "DOGEUSDT",
	"polkadot":      "DOTUSDT",
	"tron":          "TRXUSDT",
	"chainlink":     "LINKUSDT",
	"litecoin":      "LTCUSDT",
	"avalanche-2":   "AVAXUSDT",
	"uniswap":       "UNIUSDT",
	"stellar":       "XLMUSDT",
	"cosmos":        "ATOMUSDT",
	"filecoin":      "FILUSDT",
	"aptos":         "APTUSDT",
	"near":          "NEARUSDT",
	"arbitrum":      "ARBUSDT",
	"optimism":      "OPUSDT",
	"matic-network": "MATICUSDT",
}
