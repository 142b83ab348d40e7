package binder

// Defaults holds the neutral value a node is built with when its
// number-or-reference slot receives a reference. The referenced signal
// replaces it once the graph is wired.
//
// Node types absent from the table have no number-or-reference slot.
var Defaults = map[NodeType]float64{
	LowPass:      100.0,
	HighPass:     100.0,
	AllPassGain:  0.0,
	MulOp:        0.0,
	AddOp:        0.0,
	DelayMs:      2000.0,
	DelayN:       0,
	SineOsc:      0.0,
	SquareOsc:    0.0,
	SawOsc:       0.0,
	TriangleOsc:  0.0,
	ImpulseTrain: 0.0,
	SpeedMarker:  1.0,
	OnePole:      0.0,
	KickDrum:     0.0,
	HiHat:        0.0,
	SnareDrum:    0.0,
}
