package styles

// DarkTheme is the dark-mode palette.
var DarkTheme = Theme{
	Name: "dark",
	Base: BaseColors{
		Background: "234",
		Foreground: "252",
		Muted:      "245",
		Accent:     "75",
		Border:     "240",
	},
	Message: MessageColors{
		Text:    "252",
		Time:    "245",
		Pending: "245",
		Failed:  "203",
	},
	Chrome: ChromeColors{
		Header:    "111",
		Footer:    "110",
		DateRule:  "238",
		Scrollbar: "246",
	},
}
