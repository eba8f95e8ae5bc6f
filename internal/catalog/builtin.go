package catalog

// builtinDefs is the default metric set. Units follow the raw series:
// GDP and corporate profits arrive in billions, federal debt in millions,
// hence the scales below.
func builtinDefs() []MetricDef {
	return []MetricDef{
		{
			Key:         "pe-ratio",
			Title:       "US P/E Ratio",
			Attribution: "Yahoo Finance - VTI (Total US Market)",
			Parts: []PartDef{
				{Label: "P/E ratio", Kind: KindTrailingPE, ID: "VTI", Unit: "x"},
			},
		},
		{
			Key:         "cape",
			Title:       "US CAPE Ratio",
			Attribution: "multpl.com - Shiller PE",
			Parts: []PartDef{
				{Label: "CAPE ratio", Kind: KindCAPE, ID: "shiller-pe", Unit: "x"},
			},
		},
		{
			Key:         "credit-spreads",
			Title:       "US Credit Spreads",
			Attribution: "FRED - Moody's BAA Corporate Bond",
			Parts: []PartDef{
				{Label: "BAA corporate yield", Kind: KindSeriesLatest, Source: "fred", ID: "BAA", Unit: "%", LookbackYears: 2},
				{Label: "10-year treasury yield", Kind: KindSeriesLatest, Source: "fred", ID: "DGS10", Unit: "%", LookbackYears: 2},
				{Label: "BAA spread", Kind: KindDerived, Rule: "spread", Unit: "%", LookbackYears: 2,
					Inputs: []InputDef{
						{Role: "corporate", Source: "fred", ID: "BAA"},
						{Role: "treasury", Source: "fred", ID: "DGS10"},
					}},
			},
		},
		{
			Key:         "market-to-gdp",
			Title:       "US Stock Market / GDP",
			Attribution: "FRED - Stock Market Capitalization to GDP",
			Parts: []PartDef{
				{Label: "market cap to GDP", Kind: KindSeriesLatest, Source: "fred", ID: "DDDM01USA156NWDB", Unit: "%"},
			},
		},
		{
			Key:         "buffett-ratio",
			Title:       "US Buffett Indicator",
			Attribution: "Yahoo Finance + FRED - Wilshire 5000 over GDP",
			Parts: []PartDef{
				{Label: "Wilshire 5000 / GDP", Kind: KindDerived, Rule: "ratio", Scale: 100, Unit: "%",
					Inputs: []InputDef{
						{Role: "market", Source: "yahoo", ID: "^W5000"},
						{Role: "gdp", Source: "fred", ID: "GDP"},
					}},
			},
		},
		{
			Key:         "gdp",
			Title:       "US GDP",
			Attribution: "FRED - Bureau of Economic Analysis",
			Parts: []PartDef{
				{Label: "nominal GDP", Kind: KindSeriesLatest, Source: "fred", ID: "GDP", Scale: 0.001, Unit: "$T", LookbackYears: 3},
				{Label: "real GDP growth", Kind: KindSeriesLatest, Source: "fred", ID: "A191RL1Q225SBEA", Unit: "%", LookbackYears: 3},
			},
		},
		{
			Key:         "government",
			Title:       "US Government Debt & Deficit",
			Attribution: "FRED - Treasury Department",
			Parts: []PartDef{
				{Label: "federal debt", Kind: KindSeriesLatest, Source: "fred", ID: "GFDEBTN", Scale: 1e-6, Unit: "$T", LookbackYears: 3},
				{Label: "federal surplus/deficit", Kind: KindSeriesLatest, Source: "fred", ID: "FYFSD", Scale: 0.001, Unit: "$B", LookbackYears: 3},
				{Label: "debt to GDP", Kind: KindDerived, Rule: "ratio", Scale: 0.1, Unit: "%", LookbackYears: 5,
					Inputs: []InputDef{
						{Role: "debt", Source: "fred", ID: "GFDEBTN"},
						{Role: "gdp", Source: "fred", ID: "GDP"},
					}},
			},
		},
		{
			Key:         "ten-year-yield",
			Title:       "US 10-Year Yield",
			Attribution: "FRED - Treasury Department",
			Parts: []PartDef{
				{Label: "10-year treasury yield", Kind: KindSeriesLatest, Source: "fred", ID: "DGS10", Unit: "%", LookbackYears: 1},
			},
		},
		{
			Key:         "inflation",
			Title:       "US Inflation Rate",
			Attribution: "FRED - Bureau of Labor Statistics",
			Parts: []PartDef{
				{Label: "CPI year-over-year", Kind: KindDerived, Rule: "growth", Window: 12, Unit: "%", LookbackYears: 3,
					Inputs: []InputDef{
						{Role: "cpi", Source: "fred", ID: "CPIAUCSL"},
					}},
			},
		},
		{
			Key:         "equity-risk-premium",
			Title:       "US Equity Risk Premium",
			Attribution: "Computed - earnings yield minus 10-year treasury",
			Parts: []PartDef{
				{Label: "equity risk premium", Kind: KindRiskPremium, ID: "VTI", RiskFreeID: "DGS10", LookbackYears: 1},
			},
		},
		{
			Key:         "earnings-growth",
			Title:       "US Earnings Growth",
			Attribution: "FRED - Corporate Profits",
			Parts: []PartDef{
				{Label: "corporate profits YoY", Kind: KindDerived, Rule: "growth", Window: 4, Unit: "%", LookbackYears: 6,
					Inputs: []InputDef{
						{Role: "profits", Source: "fred", ID: "CP"},
					}},
			},
		},
		{
			Key:         "gold",
			Title:       "Gold Price",
			Attribution: "Yahoo Finance - Gold Futures (GC=F)",
			Parts: []PartDef{
				{Label: "gold per troy ounce", Kind: KindQuotePrice, ID: "GC=F", Unit: "$"},
			},
		},
		{
			Key:         "bitcoin",
			Title:       "Bitcoin Price",
			Attribution: "Yahoo Finance - BTC-USD",
			Parts: []PartDef{
				{Label: "bitcoin", Kind: KindQuotePrice, ID: "BTC-USD", Unit: "$"},
			},
		},
		{
			Key:         "wti-crude",
			Title:       "WTI Crude Oil Price",
			Attribution: "Yahoo Finance - Crude Oil Futures (CL=F)",
			Parts: []PartDef{
				{Label: "WTI crude per barrel", Kind: KindQuotePrice, ID: "CL=F", Unit: "$"},
			},
		},
	}
}
