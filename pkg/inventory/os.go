package inventory

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// OSCount is the value of an OS distribution entry. Two generations coexist: a bare number
// (legacy `os` map) and a record with support information (`osInfo` map). Both decode here.
type OSCount struct {
	Count                 int
	Supported             *bool
	UpgradeRecommendation string
}

type osCountRecord struct {
	Count                 float64 `json:"count"`
	Supported             *bool   `json:"supported,omitempty"`
	UpgradeRecommendation string  `json:"upgradeRecommendation,omitempty"`
}

func (c *OSCount) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*c = OSCount{}
		return nil
	}

	if trimmed[0] == '{' {
		var rec osCountRecord
		if err := json.Unmarshal(trimmed, &rec); err != nil {
			return fmt.Errorf("failed to decode os record: %w", err)
		}
		*c = OSCount{
			Count:                 int(rec.Count),
			Supported:             rec.Supported,
			UpgradeRecommendation: rec.UpgradeRecommendation,
		}
		return nil
	}

	var n float64
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("failed to decode os count: %w", err)
	}
	*c = OSCount{Count: int(n)}
	return nil
}

func (c OSCount) MarshalJSON() ([]byte, error) {
	if c.Supported == nil && c.UpgradeRecommendation == "" {
		return json.Marshal(c.Count)
	}
	return json.Marshal(osCountRecord{
		Count:                 float64(c.Count),
		Supported:             c.Supported,
		UpgradeRecommendation: c.UpgradeRecommendation,
	})
}

// OSDistributionEntry is a single named entry of an OSDistribution.
type OSDistributionEntry struct {
	Name  string
	Value OSCount
}

// OSDistribution is an OS name keyed map which keeps the key order of the source document.
// The order is the tie-break order when entries with equal counts are sorted.
type OSDistribution []OSDistributionEntry

func (d *OSDistribution) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*d = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("os distribution must be an object, got %v", tok)
	}

	entries := OSDistribution{}
	index := make(map[string]int)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("unexpected os distribution key %v", keyTok)
		}

		var count OSCount
		if err := dec.Decode(&count); err != nil {
			return fmt.Errorf("os %q: %w", name, err)
		}

		// a repeated key replaces the earlier value but keeps its position
		if i, found := index[name]; found {
			entries[i].Value = count
			continue
		}
		index[name] = len(entries)
		entries = append(entries, OSDistributionEntry{Name: name, Value: count})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*d = entries
	return nil
}

func (d OSDistribution) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(entry.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(entry.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Entries flattens the distribution into name/count pairs, in document order.
func (d OSDistribution) Entries() []OSEntry {
	entries := make([]OSEntry, 0, len(d))
	for _, e := range d {
		entries = append(entries, OSEntry{Name: e.Name, Count: e.Value.Count})
	}
	return entries
}

// ExtractOSEntries returns the OS distribution of vms. The richer osInfo map wins when it is not
// empty, otherwise the legacy os map is used. No OS data at all yields an empty, non-nil slice.
func ExtractOSEntries(vms VMsData) []OSEntry {
	if len(vms.OSInfo) > 0 {
		return vms.OSInfo.Entries()
	}
	if len(vms.OS) > 0 {
		return vms.OS.Entries()
	}
	return []OSEntry{}
}
