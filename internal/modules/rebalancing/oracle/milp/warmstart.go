package milp

import (
	"github.com/vmihailenco/msgpack/v5"
)

// WarmStart is a snapshot of a previous solve's variable values, keyed by
// variable name so it survives across problem rebuilds where variable
// indices shift (a new trading day adds/removes tax lots). Grounded on
// internal/mcu/protocol.go's use of vmihailenco/msgpack/v5 for compact wire
// framing; here it serializes a solution vector instead of an RPC frame.
type WarmStart struct {
	Values map[string]float64 `msgpack:"values"`
}

// Snapshot captures a Solution's variable assignment for reuse as the next
// solve's warm start.
func Snapshot(sol Solution) *WarmStart {
	values := make(map[string]float64, len(sol.Values))
	for k, v := range sol.Values {
		values[k] = v
	}
	return &WarmStart{Values: values}
}

// Encode serializes a WarmStart to msgpack bytes for caching between
// process invocations (e.g. consecutive CLI harness runs).
func Encode(ws *WarmStart) ([]byte, error) {
	return msgpack.Marshal(ws)
}

// Decode restores a WarmStart from msgpack bytes produced by Encode.
func Decode(data []byte) (*WarmStart, error) {
	var ws WarmStart
	if err := msgpack.Unmarshal(data, &ws); err != nil {
		return nil, err
	}
	return &ws, nil
}

// seedBranchOrder reorders a binary variable candidate list so variables
// whose warm-started value is closest to 1 are branched toward first,
// accelerating convergence to a good incumbent without affecting
// correctness (branch-and-bound still explores the full tree on a miss).
func seedBranchOrder(p *Problem, binaryVars []int, ws *WarmStart) []int {
	if ws == nil {
		return binaryVars
	}
	ordered := make([]int, len(binaryVars))
	copy(ordered, binaryVars)
	value := func(j int) float64 {
		if j < 0 || j >= len(p.Vars) {
			return 0
		}
		v, ok := ws.Values[p.Vars[j].Name]
		if !ok {
			return 0
		}
		return v
	}
	for i := 1; i < len(ordered); i++ {
		j := i
		for j > 0 && value(ordered[j-1]) < value(ordered[j]) {
			ordered[j-1], ordered[j] = ordered[j], ordered[j-1]
			j--
		}
	}
	return ordered
}
