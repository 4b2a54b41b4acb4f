package catalog

// Default rotation: long-form lofi mixes hosted on the archive. The station
// ships with these baked in; config can swap in a different list.
var DefaultTracks = []Track{
	{Title: "midnight study session", URL: "https://media.nightwave.fm/tracks/midnight-study-session.mp3"},
	{Title: "rainy window loops", URL: "https://media.nightwave.fm/tracks/rainy-window-loops.mp3"},
	{Title: "tape hiss daydream", URL: "https://media.nightwave.fm/tracks/tape-hiss-daydream.mp3"},
	{Title: "neon alley walk", URL: "https://media.nightwave.fm/tracks/neon-alley-walk.mp3"},
	{Title: "late train home", URL: "https://media.nightwave.fm/tracks/late-train-home.mp3"},
	{Title: "coffee shop 2am", URL: "https://media.nightwave.fm/tracks/coffee-shop-2am.mp3"},
}

// DefaultBackdrops are the decorative scenes cycled on every track change.
var DefaultBackdrops = []Backdrop{
	{Name: "city rain", Palette: []string{"#1a1b26", "#24283b", "#414868", "#7aa2f7"}},
	{Name: "sunset rooftop", Palette: []string{"#2d1b2e", "#613a61", "#b05574", "#f7a58c"}},
	{Name: "forest fog", Palette: []string{"#1e2326", "#2d4138", "#4f6f52", "#a3b899"}},
	{Name: "night drive", Palette: []string{"#0f0f1a", "#1f1d36", "#3f3351", "#e98ea0"}},
	{Name: "tatami room", Palette: []string{"#2b2118", "#4a3828", "#7d5a3c", "#d9b88f"}},
	{Name: "arcade glow", Palette: []string{"#10002b", "#3c096c", "#7b2cbf", "#c77dff"}},
	{Name: "winter window", Palette: []string{"#1c2541", "#3a506b", "#5bc0be", "#d8e2dc"}},
}
