package shipping

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

//go:embed wilayas.json
var wilayasJSON []byte

// Region is a top-level delivery zone (a wilaya)
type Region struct {
	Code int    `json:"code"`
	Name string `json:"name"`
}

var (
	regionsOnce sync.Once
	regions     []Region
	regionsErr  error
)

// Regions returns the static list of regions ordered by code
func Regions() ([]Region, error) {
	regionsOnce.Do(func() {
		if err := json.Unmarshal(wilayasJSON, &regions); err != nil {
			regionsErr = fmt.Errorf("failed to decode region dataset: %w", err)
		}
	})
	if regionsErr != nil {
		return nil, regionsErr
	}
	out := make([]Region, len(regions))
	copy(out, regions)
	return out, nil
}

// RegionNames returns the region names in dataset order
func RegionNames() ([]string, error) {
	rs, err := Regions()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(rs))
	for i, r := range rs {
		names[i] = r.Name
	}
	return names, nil
}

// IsKnownRegion reports whether name is in the region dataset
func IsKnownRegion(name string) bool {
	rs, err := Regions()
	if err != nil {
		return false
	}
	name = strings.TrimSpace(name)
	for _, r := range rs {
		if r.Name == name {
			return true
		}
	}
	return false
}
