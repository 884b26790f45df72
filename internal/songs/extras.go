package songs

import "github.com/smukkama/smartclass/internal/melody"

// extras follow the firmware library, ids 25-36.
var extras = []melody.Song{
	// 25-27 school bells
	score("Bell: Lesson Start",
		[]int{E5, C5, D5, G4, Rest, G4, D5, E5, C5},
		[]int{4, 4, 4, 2, 8, 4, 4, 4, 2},
	),
	score("Bell: Break Time",
		[]int{C5, E5, G5, C6, Rest, G5, C6},
		[]int{8, 8, 8, 4, 8, 8, 2},
	),
	score("Bell: End of Day",
		[]int{G5, E5, C5, G4, Rest, C5, E5, G5, C6},
		[]int{4, 4, 4, 2, 8, 8, 8, 8, 1},
	),

	// 28-32 classroom tunes
	score("Frere Jacques",
		[]int{
			C4, D4, E4, C4, C4, D4, E4, C4,
			E4, F4, G4, E4, F4, G4,
		},
		[]int{
			4, 4, 4, 4, 4, 4, 4, 4,
			4, 4, 2, 4, 4, 2,
		},
	),
	score("Mary Had a Little Lamb",
		[]int{
			E4, D4, C4, D4, E4, E4, E4,
			D4, D4, D4, E4, G4, G4,
		},
		[]int{
			4, 4, 4, 4, 4, 4, 2,
			4, 4, 2, 4, 4, 2,
		},
	),
	score("London Bridge",
		[]int{
			G4, A4, G4, F4, E4, F4, G4,
			D4, E4, F4, E4, F4, G4,
		},
		[]int{
			6, 8, 4, 4, 4, 4, 2,
			4, 4, 2, 4, 4, 2,
		},
	),
	score("Row Row Row Your Boat",
		[]int{
			C4, C4, C4, D4, E4,
			E4, D4, E4, F4, G4,
		},
		[]int{
			4, 4, 6, 8, 2,
			6, 8, 6, 8, 1,
		},
	),
	score("Brahms Lullaby",
		[]int{
			E4, E4, G4, E4, E4, G4,
			E4, G4, C5, B4, A4, A4, G4,
		},
		[]int{
			8, 8, 2, 8, 8, 2,
			8, 8, 4, 4, 4, 4, 2,
		},
	),

	// 33-35 stingers
	score("Alert",
		[]int{A5, E5, A5, E5, A5, E5},
		[]int{8, 8, 8, 8, 8, 8},
	),
	score("Success",
		[]int{C5, E5, G5, C6},
		[]int{16, 16, 16, 4},
	),
	score("Error",
		[]int{G4, Rest, C4},
		[]int{8, 16, 2},
	),

	// 36
	score("Startup Chime",
		[]int{C5, G5, E5, C6},
		[]int{8, 8, 8, 4},
	),
}
