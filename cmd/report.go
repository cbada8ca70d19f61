package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/edp1096/toy-ybus/pkg/netlist"
	"github.com/edp1096/toy-ybus/pkg/util"
)

// phasorNames returns the sorted V(..) and I(..) names of a result set.
func phasorNames(results map[string][]float64) (voltageNames, currentNames []string) {
	for name := range results {
		if !strings.HasSuffix(name, "_MAG") {
			continue
		}
		baseName := strings.TrimSuffix(name, "_MAG")
		if strings.HasPrefix(baseName, "V(") {
			voltageNames = append(voltageNames, baseName)
		} else if strings.HasPrefix(baseName, "I(") {
			currentNames = append(currentNames, baseName)
		}
	}
	sort.Strings(voltageNames)
	sort.Strings(currentNames)
	return voltageNames, currentNames
}

func prefixed(results map[string][]float64, prefix string) []string {
	var names []string
	for name := range results {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func printPhasor(w io.Writer, results map[string][]float64, name string, i int) {
	mag, ok := results[name+"_MAG"]
	if !ok {
		return
	}
	phase, ok := results[name+"_PHASE"]
	if !ok {
		return
	}
	fmt.Fprintf(w, "%s  ", util.FormatMagnitudePhase(name, mag[i], phase[i]))
}

func printMetrics(w io.Writer, results map[string][]float64) {
	if _, ok := results["NNZ"]; !ok {
		return
	}
	fmt.Fprintf(w, "\nMatrix: nnz=%g lu_nnz=%g rcond=%.3e rgrowth=%.3e condest=%.3e flops=%g\n",
		results["NNZ"][0], results["LUNNZ"][0], results["RCOND"][0],
		results["RGROWTH"][0], results["CONDEST"][0], results["FLOPS"][0])
}

func printResults(w io.Writer, kind netlist.AnalysisType, results map[string][]float64) {
	switch kind {
	case netlist.AnalysisAC:
		freqs := results["FREQ"]
		fmt.Fprintf(w, "\nAC Analysis Results (%d frequency points):\n", len(freqs))
		fmt.Fprintln(w, "Frequency      Node Voltages (Magnitude/Phase)        Branch Currents (Magnitude/Phase)")
		fmt.Fprintln(w, "-----------------------------------------------------------------------------")

		voltageNames, currentNames := phasorNames(results)
		for i, freq := range freqs {
			fmt.Fprintf(w, "%-13s", util.FormatFrequency(freq))
			for _, name := range voltageNames {
				printPhasor(w, results, name, i)
			}
			for _, name := range currentNames {
				printPhasor(w, results, name, i)
			}
			fmt.Fprintln(w)
		}
		printMetrics(w, results)

	case netlist.AnalysisOP:
		voltageNames, currentNames := phasorNames(results)
		fmt.Fprintln(w, "\nNode Voltages:")
		for _, name := range voltageNames {
			printPhasor(w, results, name, 0)
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, "\nBranch Currents:")
		for _, name := range currentNames {
			printPhasor(w, results, name, 0)
			fmt.Fprintln(w)
		}
		printMetrics(w, results)

	case netlist.AnalysisIslands:
		fmt.Fprintf(w, "\nIslands: %g\n", results["ISLANDS"][0])
		for _, name := range prefixed(results, "ISLAND(") {
			fmt.Fprintf(w, "%s = %g\n", name, results[name][0])
		}

	case netlist.AnalysisPartition:
		fmt.Fprintf(w, "\nEdge cut: %g\n", results["EDGECUT"][0])
		for _, name := range prefixed(results, "ZONE(") {
			fmt.Fprintf(w, "%s = %g\n", name, results[name][0])
		}
	}
}
