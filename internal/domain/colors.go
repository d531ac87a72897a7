package domain

// ColorPalette is the fixed set of player colors, in assignment order.
var ColorPalette = []string{
	"#e74c3c",
	"#3498db",
	"#2ecc71",
	"#f1c40f",
	"#9b59b6",
	"#e67e22",
}

// NextColor picks the lowest-indexed palette color not held by any player in
// the room, connected or not. When the palette is exhausted it falls back to
// the first color, so duplicate colors are possible past six players.
func NextColor(players map[string]*Player) string {
	for _, color := range ColorPalette {
		inUse := false
		for _, player := range players {
			if player.Color == color {
				inUse = true
				break
			}
		}
		if !inUse {
			return color
		}
	}
	return ColorPalette[0]
}
