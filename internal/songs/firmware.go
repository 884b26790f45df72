package songs

import "github.com/smukkama/smartclass/internal/melody"

// firmware is the built-in library, ids 0-24.
var firmware = []melody.Song{
	score("Super Mario",
		[]int{
			E5, E5, Rest, E5, Rest, C5, E5, Rest,
			G5, Rest, G4, Rest, C5, G4, Rest, E4,
			A4, B4, AS4, A4, G4, E5, G5, A5,
			F5, G5, Rest, E5, C5, D5, B4,
		},
		[]int{
			8, 8, 8, 8, 8, 8, 8, 8,
			4, 4, 4, 4, 4, 8, 4, 4,
			4, 4, 8, 4, 8, 8, 8, 4,
			8, 8, 8, 4, 8, 8, 4,
		},
	),
	score("Zelda Storms",
		[]int{
			D4, F4, D5, D4, F4, D5, E5, F5,
			E5, F5, E5, C5, A4, A4, D4, F4,
			G4, A4, A4, D4, F4, G4, E4,
		},
		[]int{
			8, 8, 2, 8, 8, 2, 6, 16,
			6, 16, 6, 8, 2, 4, 4, 8,
			8, 2, 4, 4, 8, 8, 2,
		},
	),
	score("Imperial March",
		[]int{
			A4, A4, A4, F4, C5, A4, F4, C5,
			A4, E5, E5, E5, F5, C5, GS4, F4,
			C5, A4,
		},
		[]int{
			4, 4, 4, 8, 16, 4, 8, 16,
			2, 4, 4, 4, 8, 16, 4, 8,
			16, 2,
		},
	),
	score("Happy Birthday",
		[]int{
			C4, C4, D4, C4, F4, E4, C4, C4,
			D4, C4, G4, F4, C4, C4, C5, A4,
			F4, E4, D4, AS4, AS4, A4, F4, G4,
			F4,
		},
		[]int{
			8, 8, 4, 4, 4, 2, 8, 8,
			4, 4, 4, 2, 8, 8, 4, 4,
			4, 4, 4, 8, 8, 4, 4, 4,
			2,
		},
	),
	score("Tetris",
		[]int{
			E5, B4, C5, D5, C5, B4, A4, A4,
			C5, E5, D5, C5, B4, C5, D5, E5,
			C5, A4, A4,
		},
		[]int{
			4, 8, 8, 4, 8, 8, 4, 8,
			8, 4, 8, 8, 4, 8, 4, 4,
			4, 4, 4,
		},
	),
	score("Harry Potter",
		[]int{
			D4, G4, AS4, A4, G4, D5, C5, A4,
			G4, AS4, A4, F4, GS4, D4,
		},
		[]int{
			4, 4, 8, 4, 2, 4, 2, 2,
			4, 8, 4, 2, 4, 2,
		},
	),
	score("Pink Panther",
		[]int{
			Rest, DS4, E4, Rest, FS4, G4, Rest, DS4,
			E4, FS4, G4, C5, B4, E4, G4, B4,
			AS4, A4, G4, E4, D4, E4,
		},
		[]int{
			2, 8, 4, 2, 8, 4, 2, 8,
			8, 8, 8, 8, 8, 8, 8, 8,
			2, 16, 16, 16, 16, 2,
		},
	),
	score("Nokia Ringtone",
		[]int{
			E5, D5, FS4, GS4, CS5, B4, D4, E4,
			B4, A4, CS4, E4, A4,
		},
		[]int{
			8, 8, 4, 4, 8, 8, 4, 4,
			8, 8, 4, 4, 2,
		},
	),
	score("Twinkle Star",
		[]int{
			C4, C4, G4, G4, A4, A4, G4, F4,
			F4, E4, E4, D4, D4, C4,
		},
		[]int{
			4, 4, 4, 4, 4, 4, 2, 4,
			4, 4, 4, 4, 4, 2,
		},
	),
	score("Jingle Bells",
		[]int{
			E5, E5, E5, E5, E5, E5, E5, G5,
			C5, D5, E5, F5, F5, F5, F5, F5,
			E5, E5, E5, E5, D5, D5, E5, D5,
			G5,
		},
		[]int{
			8, 8, 4, 8, 8, 4, 8, 8,
			8, 8, 2, 8, 8, 8, 8, 8,
			8, 8, 16, 16, 8, 8, 8, 4,
			4,
		},
	),
	score("Silent Night",
		[]int{
			G4, A4, G4, E4, G4, A4, G4, E4,
			D5, D5, B4, C5, C5, G4,
		},
		[]int{
			6, 8, 4, 2, 6, 8, 4, 2,
			2, 4, 2, 2, 4, 2,
		},
	),
	score("Take On Me",
		[]int{
			FS5, FS5, D5, B4, B4, E5, E5, E5,
			GS5, GS5, A5, B5, A5, A5, A5, E5,
			D5, FS5, FS5, FS5, E5, E5, FS5, E5,
		},
		[]int{
			8, 8, 8, 8, 8, 8, 8, 8,
			8, 8, 8, 8, 8, 8, 8, 8,
			8, 8, 8, 8, 8, 8, 8, 8,
		},
	),
	score("StarWars Cantina",
		[]int{
			B4, E5, B4, E5, B4, E5, B4, AS4,
			B4, AS4, B4, AS4, E4,
		},
		[]int{
			8, 8, 8, 8, 8, 8, 8, 16,
			16, 16, 16, 8, 8,
		},
	),
	score("Sweet Child",
		[]int{
			CS5, CS6, GS5, FS5, FS6, GS5, F6, GS5,
			CS5, CS6, GS5, FS5, FS6, GS5, F6, GS5,
		},
		[]int{
			8, 8, 8, 8, 8, 8, 8, 8,
			8, 8, 8, 8, 8, 8, 8, 8,
		},
	),
	score("Fur Elise",
		[]int{
			E5, DS5, E5, DS5, E5, B4, D5, C5,
			A4, Rest, C4, E4, A4, B4, Rest, E4,
			GS4, B4, C5,
		},
		[]int{
			8, 8, 8, 8, 8, 8, 8, 8,
			2, 8, 8, 8, 8, 2, 8, 8,
			8, 8, 2,
		},
	),
	score("Ode to Joy",
		[]int{
			E4, E4, F4, G4, G4, F4, E4, D4,
			C4, C4, D4, E4, E4, D4, D4,
		},
		[]int{
			4, 4, 4, 4, 4, 4, 4, 4,
			4, 4, 4, 4, 4, 8, 2,
		},
	),
	score("Pirates Caribbean",
		[]int{
			E4, G4, A4, A4, Rest, A4, B4, C5,
			C5, Rest, C5, D5, B4, B4, Rest, A4,
			G4, A4,
		},
		[]int{
			8, 8, 4, 8, 8, 8, 8, 4,
			8, 8, 8, 8, 4, 8, 8, 8,
			8, 2,
		},
	),
	score("Mission Impossible",
		[]int{
			G4, G4, AS4, C5, G4, G4, F4, FS4,
			G4, G4, AS4, C5, G4, G4, F4, FS4,
		},
		[]int{
			2, 2, 8, 8, 2, 2, 8, 8,
			2, 2, 8, 8, 2, 2, 8, 8,
		},
	),
	score("Indiana Jones",
		[]int{
			E5, F5, G5, C6, D5, E5, F5, G5,
			A5, B5, F6, A5, B5, C6, D6, E6,
		},
		[]int{
			8, 8, 4, 1, 8, 8, 1, 8,
			8, 4, 1, 8, 8, 4, 4, 1,
		},
	),
	score("James Bond",
		[]int{
			E4, F4, F4, F4, F4, E4, E4, E4,
			E4, G4, G4, G4, G4, F4, F4, F4,
		},
		[]int{
			8, 16, 16, 8, 8, 8, 8, 8,
			8, 16, 16, 8, 8, 8, 8, 8,
		},
	),
	score("Pokemon Theme",
		[]int{
			B3, B3, B3, B3, A3, B3, E4, E4,
			D4, B3, A3, A3, A3, G3, A3, D4,
			B3,
		},
		[]int{
			8, 8, 8, 8, 8, 8, 2, 8,
			8, 8, 2, 8, 8, 8, 8, 4,
			2,
		},
	),
	score("Gravity Falls",
		[]int{
			F4, A4, C5, A4, F4, D4, D4, F4,
			A4, G4, F4, E4, D4, E4, F4, E4,
		},
		[]int{
			8, 8, 8, 8, 8, 8, 8, 8,
			8, 8, 8, 8, 8, 8, 8, 8,
		},
	),
	score("Sherlock",
		[]int{
			D4, F4, A4, D5, C5, B4, A4, G4,
			A4, D4,
		},
		[]int{
			4, 4, 4, 2, 8, 8, 8, 8,
			2, 2,
		},
	),
	score("Coffin Dance",
		[]int{
			F4, F4, F4, F4, C5, C5, C5, C5,
			F5, F5, E5, E5, D5, D5, C5, C5,
			A4,
		},
		[]int{
			8, 8, 8, 8, 8, 8, 8, 8,
			8, 8, 8, 8, 8, 8, 8, 8,
			2,
		},
	),
	score("Rick Roll",
		[]int{
			D5, E5, A4, E5, FS5, A5, GS5, E5,
			D5, E5, A4, A4, A4, E5, FS5, A5,
			B5, A5, GS5, D5,
		},
		[]int{
			8, 8, 8, 8, 8, 8, 8, 4,
			8, 8, 8, 16, 16, 8, 8, 8,
			8, 8, 8, 2,
		},
	),
}
