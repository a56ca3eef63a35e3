// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package manifest

// Combination is one variant of a manifest.
type Combination struct {
	// Index counts every combination in walk order, excluded ones included.
	Index int

	// Keywords holds the chosen entry of each layer, empty entries dropped.
	Keywords []string
}

// Count returns the number of combinations before exclusion.
func (m *Manifest) Count() int {
	n := 1
	for _, l := range m.Variants {
		n *= len(l)
	}
	return n
}

// Rules compiles the manifest's exclude rules.
func (m *Manifest) Rules() (*Rules, error) {
	return CompileRules(m.Exclude, m.Keywords())
}

// Enumerate walks the layers with the last layer changing fastest and
// returns the combinations no exclude rule matches. A manifest without
// layers has the single empty combination. An invalid manifest returns an
// error wrapping ErrInvalid.
func (m *Manifest) Enumerate() ([]Combination, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	rules, err := m.Rules()
	if err != nil {
		return nil, err
	}

	rows := len(m.Variants)
	indices := make([]int, rows)
	var out []Combination
	for n := 0; ; n++ {
		kws := make([]string, 0, rows)
		for r, i := range indices {
			if kw := m.Variants[r][i]; kw != "" {
				kws = append(kws, kw)
			}
		}
		excluded, _, err := rules.Excluded(kws)
		if err != nil {
			return nil, err
		}
		if !excluded {
			out = append(out, Combination{Index: n, Keywords: kws})
		}

		r := rows - 1
		for ; r >= 0; r-- {
			indices[r]++
			if indices[r] != len(m.Variants[r]) {
				break
			}
			indices[r] = 0
		}
		if r < 0 {
			return out, nil
		}
	}
}
