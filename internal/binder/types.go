package binder

import "fmt"

// NodeType is the closed set of bindable node types.
type NodeType int

const (
	SamplePlayer NodeType = iota
	MetaMarker
	LowPass
	HighPass
	BalanceMix
	AllPassGain
	EnvPerc
	SineOsc
	SquareOsc
	SawOsc
	TriangleOsc
	ImpulseTrain
	PlateReverb
	MulOp
	AddOp
	DelayN
	DelayMs
	WhiteNoise
	SpeedMarker
	OnePole
	ConstSig
	KickDrum
	HiHat
	SnareDrum
	SawSynth
	SquareSynth
	TriangleSynth
	Get
	Seq
	Choose
	Mix

	nodeTypeCount
)

// nodeTypeNames holds the DSL spelling of each node type.
var nodeTypeNames = [nodeTypeCount]string{
	SamplePlayer:  "sp",
	MetaMarker:    "meta",
	LowPass:       "lpf",
	HighPass:      "rhpf",
	BalanceMix:    "balance",
	AllPassGain:   "apfmsgain",
	EnvPerc:       "envperc",
	SineOsc:       "sin",
	SquareOsc:     "squ",
	SawOsc:        "saw",
	TriangleOsc:   "tri",
	ImpulseTrain:  "imp",
	PlateReverb:   "plate",
	MulOp:         "mul",
	AddOp:         "add",
	DelayN:        "delayn",
	DelayMs:       "delayms",
	WhiteNoise:    "noise",
	SpeedMarker:   "speed",
	OnePole:       "onepole",
	ConstSig:      "constsig",
	KickDrum:      "bd",
	HiHat:         "hh",
	SnareDrum:     "sn",
	SawSynth:      "sawsynth",
	SquareSynth:   "squsynth",
	TriangleSynth: "trisynth",
	Get:           "get",
	Seq:           "seq",
	Choose:        "choose",
	Mix:           "mix",
}

var nodeTypesByName = func() map[string]NodeType {
	m := make(map[string]NodeType, nodeTypeCount)
	for t, name := range nodeTypeNames {
		m[name] = NodeType(t)
	}
	return m
}()

func (t NodeType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("NodeType(%d)", int(t))
	}
	return nodeTypeNames[t]
}

// Valid reports whether t is a member of the node type set.
func (t NodeType) Valid() bool {
	return t >= 0 && t < nodeTypeCount
}

// ParseNodeType resolves a DSL type name.
func ParseNodeType(name string) (NodeType, bool) {
	t, ok := nodeTypesByName[name]
	return t, ok
}

// NodeTypes returns every node type in declaration order.
func NodeTypes() []NodeType {
	types := make([]NodeType, nodeTypeCount)
	for i := range types {
		types[i] = NodeType(i)
	}
	return types
}
