package netlist

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/edp1096/toy-ybus/internal/consts"
	"github.com/edp1096/toy-ybus/pkg/device"
	"github.com/edp1096/toy-ybus/pkg/matrix"
	"github.com/edp1096/toy-ybus/pkg/system"
)

type AnalysisType int

const (
	AnalysisOP AnalysisType = iota
	AnalysisAC
	AnalysisIslands
	AnalysisPartition
)

func (a AnalysisType) String() string {
	switch a {
	case AnalysisOP:
		return "op"
	case AnalysisAC:
		return "ac"
	case AnalysisIslands:
		return "islands"
	case AnalysisPartition:
		return "partition"
	default:
		return fmt.Sprintf("AnalysisType(%d)", int(a))
	}
}

type NetlistData struct {
	Elements  []Element      // Network elements
	Nodes     map[string]int // Node name and index of first appearance
	Analyses  []AnalysisType // In netlist order, OP when none is given
	Frequency float64        // Operating point frequency
	ACParam   struct {
		Sweep  string  // DEC, OCT, LIN
		FStart float64 // start frequency
		Points int     // points per decade
		FStop  float64 // stop frequency
	}
	Zones   int // partition count
	Options struct {
		Reuse     system.ReuseTier
		Format    matrix.Format
		HasReuse  bool
		HasFormat bool
	}
	Title string // Network title
}

type Element struct {
	Type   string            // Part type (R, L, C, Z, Y, I)
	Name   string            // Part name
	Nodes  []string          // Node names
	Value  float64           // Part value
	Params map[string]string // Parameter values
}

var unitMap = map[string]float64{
	"T":   1e12,  // tera
	"G":   1e9,   // giga
	"meg": 1e6,   // mega
	"K":   1e3,   // kilo
	"k":   1e3,   // kilo
	"m":   1e-3,  // milli
	"u":   1e-6,  // micro
	"n":   1e-9,  // nano
	"p":   1e-12, // pico
	"f":   1e-15, // femto
}

var (
	valuePattern = regexp.MustCompile(`^([-+]?\d*\.?\d+(?:[eE][-+]?\d+)?)(meg|[TGMKkmunpf])?s?$`)
	spacePattern = regexp.MustCompile(`\s+`)
)

func IsGround(name string) bool {
	return name == consts.GroundName || strings.EqualFold(name, consts.GroundAlias)
}

func Parse(input string) (*NetlistData, error) {
	scanner := bufio.NewScanner(strings.NewReader(input))
	netlistData := &NetlistData{
		Nodes:     make(map[string]int),
		Frequency: consts.DefaultFrequency,
	}

	// Title or comment
	if scanner.Scan() {
		netlistData.Title = strings.TrimPrefix(scanner.Text(), "*")
		netlistData.Title = strings.TrimSpace(netlistData.Title)
	}

	var currentLine string
	var continuationMode bool
	ended := false

	flush := func() error {
		if currentLine == "" {
			return nil
		}
		line := currentLine
		currentLine = ""
		if strings.EqualFold(line, ".end") {
			ended = true
			return nil
		}
		return parseLine(netlistData, line)
	}

	for !ended && scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if len(line) == 0 {
			if err := flush(); err != nil {
				return nil, err
			}
			continuationMode = false
			continue
		}

		// Whole-line comment
		if strings.HasPrefix(line, "*") {
			if err := flush(); err != nil {
				return nil, err
			}
			continuationMode = false
			continue
		}

		// Inline comment
		if idx := strings.Index(line, "*"); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
		}

		if strings.HasPrefix(line, "+") {
			line = strings.TrimSpace(strings.TrimPrefix(line, "+"))
			if currentLine != "" {
				currentLine += " " + line
			}
			continuationMode = true
			continue
		}

		// Indented line after a continuation
		if continuationMode && strings.HasPrefix(scanner.Text(), " ") {
			if currentLine != "" {
				currentLine += " " + line
			}
			continue
		}

		if err := flush(); err != nil {
			return nil, err
		}
		if ended {
			break
		}
		currentLine = line
		continuationMode = false
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read netlist: %v", err)
	}

	if !ended {
		if err := flush(); err != nil {
			return nil, err
		}
	}

	if len(netlistData.Analyses) == 0 {
		netlistData.Analyses = []AnalysisType{AnalysisOP}
	}
	return netlistData, nil
}

func parseLine(netlistData *NetlistData, line string) error {
	line = spacePattern.ReplaceAllString(line, " ")

	if strings.HasPrefix(line, ".") {
		return parseDotOperator(netlistData, line)
	}

	element, err := parseElement(line)
	if err != nil {
		return err
	}

	netlistData.Elements = append(netlistData.Elements, *element)
	for _, node := range element.Nodes {
		if _, exists := netlistData.Nodes[node]; !exists {
			netlistData.Nodes[node] = len(netlistData.Nodes)
		}
	}
	return nil
}

// Parse .op, .freq, .ac, .islands, .partition, .options
func parseDotOperator(netlistData *NetlistData, line string) error {
	var err error

	fields := strings.Fields(line)
	if len(fields) < 1 {
		return fmt.Errorf("invalid analysis command")
	}

	switch strings.ToLower(fields[0]) {
	case ".op":
		netlistData.Analyses = append(netlistData.Analyses, AnalysisOP)

	case ".freq":
		if len(fields) < 2 {
			return fmt.Errorf("missing frequency")
		}
		netlistData.Frequency, err = ParseValue(fields[1])
		if err != nil {
			return fmt.Errorf("invalid frequency: %v", err)
		}
		if netlistData.Frequency < 0 {
			return fmt.Errorf("negative frequency: %g", netlistData.Frequency)
		}

	case ".ac":
		netlistData.Analyses = append(netlistData.Analyses, AnalysisAC)
		if len(fields) < 5 {
			return fmt.Errorf("insufficient AC parameters, need sweep type, points, fstart, and fstop")
		}

		// DEC, OCT, LIN
		netlistData.ACParam.Sweep = strings.ToUpper(fields[1])
		if netlistData.ACParam.Sweep != "DEC" && netlistData.ACParam.Sweep != "OCT" && netlistData.ACParam.Sweep != "LIN" {
			return fmt.Errorf("invalid sweep type: %s", netlistData.ACParam.Sweep)
		}

		netlistData.ACParam.Points, err = strconv.Atoi(fields[2])
		if err != nil {
			return fmt.Errorf("invalid points number: %v", err)
		}
		if netlistData.ACParam.Points < 1 {
			return fmt.Errorf("invalid points number: %d", netlistData.ACParam.Points)
		}
		netlistData.ACParam.FStart, err = ParseValue(fields[3])
		if err != nil {
			return fmt.Errorf("invalid fstart: %v", err)
		}
		netlistData.ACParam.FStop, err = ParseValue(fields[4])
		if err != nil {
			return fmt.Errorf("invalid fstop: %v", err)
		}
		if netlistData.ACParam.FStart <= 0 || netlistData.ACParam.FStop < netlistData.ACParam.FStart {
			return fmt.Errorf("invalid frequency range: %g to %g", netlistData.ACParam.FStart, netlistData.ACParam.FStop)
		}

	case ".islands":
		netlistData.Analyses = append(netlistData.Analyses, AnalysisIslands)

	case ".partition":
		netlistData.Analyses = append(netlistData.Analyses, AnalysisPartition)
		if len(fields) < 2 {
			return fmt.Errorf("missing zone count")
		}
		netlistData.Zones, err = strconv.Atoi(fields[1])
		if err != nil || netlistData.Zones < 1 {
			return fmt.Errorf("invalid zone count: %s", fields[1])
		}

	case ".options":
		return parseOptions(netlistData, fields[1:])

	default:
		return fmt.Errorf("unsupported analysis type: %s", fields[0])
	}

	return nil
}

func parseOptions(netlistData *NetlistData, fields []string) error {
	for _, field := range fields {
		pair := strings.SplitN(field, "=", 2)
		if len(pair) != 2 {
			return fmt.Errorf("invalid option: %s", field)
		}

		switch strings.ToLower(pair[0]) {
		case "reuse":
			tier, err := system.ParseReuseTier(pair[1])
			if err != nil {
				return err
			}
			netlistData.Options.Reuse = tier
			netlistData.Options.HasReuse = true
		case "format":
			format, err := matrix.ParseFormat(strings.ToLower(pair[1]))
			if err != nil {
				return err
			}
			netlistData.Options.Format = format
			netlistData.Options.HasFormat = true
		default:
			return fmt.Errorf("unsupported option: %s", pair[0])
		}
	}
	return nil
}

// Parse network element
func parseElement(line string) (*Element, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return nil, fmt.Errorf("invalid element format: %s", line)
	}

	elem := &Element{
		Name:   fields[0],
		Type:   strings.ToUpper(string(fields[0][0])),
		Params: make(map[string]string),
	}

	switch elem.Type {
	case "I":
		return parseCurrentSource(fields)

	case "Z":
		// Z n1 n2 r x [b]
		if len(fields) < 5 {
			return nil, fmt.Errorf("insufficient line parameters: %s", line)
		}
		elem.Nodes = fields[1:3]
		if err := parseParams(elem, fields[3:], "r", "x", "b"); err != nil {
			return nil, err
		}
		return elem, nil

	case "Y":
		// Y n1 n2 g [b]
		if len(fields) < 4 {
			return nil, fmt.Errorf("insufficient admittance parameters: %s", line)
		}
		elem.Nodes = fields[1:3]
		if err := parseParams(elem, fields[3:], "g", "b"); err != nil {
			return nil, err
		}
		return elem, nil

	case "R", "L", "C":
		if len(fields) != 4 {
			return nil, fmt.Errorf("invalid element format: %s", line)
		}
		elem.Nodes = fields[1:3]
		value, err := ParseValue(fields[3])
		if err != nil {
			return nil, err
		}
		elem.Value = value
		return elem, nil

	default:
		return nil, fmt.Errorf("unsupported element type: %s", elem.Type)
	}
}

// parseParams reads positional values into the named params, checking each
// parses. The first one is also the element value.
func parseParams(elem *Element, values []string, names ...string) error {
	if len(values) > len(names) {
		return fmt.Errorf("%s: too many parameters", elem.Name)
	}
	for i, s := range values {
		value, err := ParseValue(s)
		if err != nil {
			return fmt.Errorf("%s: invalid %s: %v", elem.Name, names[i], err)
		}
		if i == 0 {
			elem.Value = value
		}
		elem.Params[names[i]] = s
	}
	return nil
}

// I n+ n- [AC|DC] mag [phase]
func parseCurrentSource(fields []string) (*Element, error) {
	if len(fields) < 4 {
		return nil, fmt.Errorf("insufficient current source parameters")
	}

	elem := &Element{
		Name:   fields[0],
		Type:   "I",
		Nodes:  []string{fields[1], fields[2]},
		Params: make(map[string]string),
	}

	words := fields[3:]
	if kind := strings.ToUpper(words[0]); kind == "AC" || kind == "DC" {
		words = words[1:]
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("missing current magnitude")
	}
	if len(words) > 2 {
		return nil, fmt.Errorf("too many current source parameters")
	}

	magnitude, err := ParseValue(words[0])
	if err != nil {
		return nil, fmt.Errorf("invalid current magnitude: %v", err)
	}
	elem.Value = magnitude

	elem.Params["phase"] = "0"
	if len(words) > 1 {
		if _, err := ParseValue(words[1]); err != nil {
			return nil, fmt.Errorf("invalid current phase: %v", err)
		}
		elem.Params["phase"] = words[1]
	}

	return elem, nil
}

// ParseValue - Parse value and factor. 1k -> 1000
func ParseValue(val string) (float64, error) {
	matches := valuePattern.FindStringSubmatch(strings.TrimSpace(val))
	if matches == nil {
		return 0, fmt.Errorf("invalid value format: %s", val)
	}

	num, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, err
	}

	// factor
	if len(matches) > 2 && matches[2] != "" {
		if multiplier, ok := unitMap[matches[2]]; ok {
			num *= multiplier
		}
	}

	return num, nil
}

func param(elem Element, name string) float64 {
	s, ok := elem.Params[name]
	if !ok {
		return 0
	}
	value, _ := ParseValue(s)
	return value
}

func CreateDevice(elem Element) (device.Device, error) {
	switch elem.Type {
	case "R":
		return device.NewResistor(elem.Name, elem.Nodes, elem.Value), nil
	case "L":
		return device.NewInductor(elem.Name, elem.Nodes, elem.Value), nil
	case "C":
		return device.NewCapacitor(elem.Name, elem.Nodes, elem.Value), nil
	case "Z":
		return device.NewLine(elem.Name, elem.Nodes, param(elem, "r"), param(elem, "x"), param(elem, "b")), nil
	case "Y":
		return device.NewAdmittance(elem.Name, elem.Nodes, param(elem, "g"), param(elem, "b")), nil
	case "I":
		return device.NewCurrentSource(elem.Name, elem.Nodes, elem.Value, param(elem, "phase")), nil
	}
	return nil, fmt.Errorf("unsupported device type: %s", elem.Type)
}
