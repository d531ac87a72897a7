package domain

// CityZone maps one city key to the contiguous run of board cells it covers.
type CityZone struct {
	Key  string
	From int
	To   int
}

// CityZones partitions the 72-cell board into six city zones, in board order.
// Derivation tests zones in this order; the first match wins.
var CityZones = []CityZone{
	{Key: "tver", From: 1, To: 12},
	{Key: "kineshma", From: 13, To: 24},
	{Key: "naberezhnye_chelny", From: 25, To: 36},
	{Key: "kazan", From: 37, To: 50},
	{Key: "volgograd", From: 51, To: 61},
	{Key: "astrakhan", From: 62, To: 72},
}

// FirstCity is the zone every new player starts in.
const FirstCity = "tver"

// CityForPosition derives the city zone containing a board position.
// Positions outside every zone report ok=false; the caller keeps the
// player's previous city in that case.
func CityForPosition(position int) (string, bool) {
	for _, zone := range CityZones {
		if position >= zone.From && position <= zone.To {
			return zone.Key, true
		}
	}
	return "", false
}
