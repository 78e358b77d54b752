package styles

// LightTheme is the default palette.
var LightTheme = Theme{
	Name: "light",
	Base: BaseColors{
		Background: "255",
		Foreground: "235",
		Muted:      "245",
		Accent:     "32",
		Border:     "250",
	},
	Message: MessageColors{
		Text:    "235",
		Time:    "245",
		Pending: "245",
		Failed:  "160",
	},
	Chrome: ChromeColors{
		Header:    "25",
		Footer:    "245",
		DateRule:  "250",
		Scrollbar: "250",
	},
}
