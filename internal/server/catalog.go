package server

// catalog seeds the securities table.
func catalog() []security {
	return []security{
		{Symbol: "AAPL", Name: "Apple Inc.", SecurityType: "CS", Exchange: "NASDAQ", CurrentPrice: 227.52, DayChange: 1.84, DayChangePercent: 0.82, Volume: 48213000, MarketCap: 3.45e12, PERatio: 34.6, YearHigh: 237.23, YearLow: 164.08},
		{Symbol: "MSFT", Name: "Microsoft Corporation", SecurityType: "CS", Exchange: "NASDAQ", CurrentPrice: 416.06, DayChange: -2.11, DayChangePercent: -0.5, Volume: 19874000, MarketCap: 3.09e12, PERatio: 35.2, YearHigh: 468.35, YearLow: 309.45},
		{Symbol: "GOOGL", Name: "Alphabet Inc. Class A", SecurityType: "CS", Exchange: "NASDAQ", CurrentPrice: 163.24, DayChange: 0.95, DayChangePercent: 0.59, Volume: 22541000, MarketCap: 2.01e12, PERatio: 23.4, YearHigh: 191.75, YearLow: 120.21},
		{Symbol: "AMZN", Name: "Amazon.com, Inc.", SecurityType: "CS", Exchange: "NASDAQ", CurrentPrice: 186.51, DayChange: 3.02, DayChangePercent: 1.65, Volume: 41032000, MarketCap: 1.95e12, PERatio: 44.8, YearHigh: 201.2, YearLow: 118.35},
		{Symbol: "NVDA", Name: "NVIDIA Corporation", SecurityType: "CS", Exchange: "NASDAQ", CurrentPrice: 118.85, DayChange: -1.73, DayChangePercent: -1.43, Volume: 310225000, MarketCap: 2.92e12, PERatio: 55.1, YearHigh: 140.76, YearLow: 39.23},
		{Symbol: "JPM", Name: "JPMorgan Chase & Co.", SecurityType: "CS", Exchange: "NYSE", CurrentPrice: 211.58, DayChange: 0.42, DayChangePercent: 0.2, Volume: 8412000, MarketCap: 6.02e11, PERatio: 11.9, YearHigh: 225.48, YearLow: 135.19},
		{Symbol: "SPY", Name: "SPDR S&P 500 ETF Trust", SecurityType: "ETF", Exchange: "NYSE ARCA", CurrentPrice: 563.68, DayChange: 2.35, DayChangePercent: 0.42, Volume: 39587000, MarketCap: 5.21e11, YearHigh: 565.16, YearLow: 409.21},
		{Symbol: "QQQ", Name: "Invesco QQQ Trust", SecurityType: "ETF", Exchange: "NASDAQ", CurrentPrice: 480.26, DayChange: 2.9, DayChangePercent: 0.61, Volume: 31204000, MarketCap: 2.93e11, YearHigh: 503.52, YearLow: 342.35},
		{Symbol: "VTI", Name: "Vanguard Total Stock Market ETF", SecurityType: "ETF", Exchange: "NYSE ARCA", CurrentPrice: 278.11, DayChange: 1.12, DayChangePercent: 0.4, Volume: 3120000, MarketCap: 4.12e11, YearHigh: 279.42, YearLow: 201.05},
		{Symbol: "TSM", Name: "Taiwan Semiconductor Manufacturing", SecurityType: "ADRC", Exchange: "NYSE", CurrentPrice: 172.5, DayChange: -0.88, DayChangePercent: -0.51, Volume: 15420000, MarketCap: 8.94e11, PERatio: 29.3, YearHigh: 193.47, YearLow: 84.88},
		{Symbol: "BABA", Name: "Alibaba Group Holding Limited", SecurityType: "ADRC", Exchange: "NYSE", CurrentPrice: 87.9, DayChange: 0.64, DayChangePercent: 0.73, Volume: 12877000, MarketCap: 2.12e11, PERatio: 17.8, YearHigh: 92.28, YearLow: 66.63},
	}
}
