package exclusion

// ZoneSet is a collection of exclusion zones with common presets.
type ZoneSet struct {
	Zones []Zone `json:"zones"`
}

// Add appends a zone to the set.
func (s *ZoneSet) Add(z Zone) {
	s.Zones = append(s.Zones, z)
}

// Remove deletes the first zone equal to z.
func (s *ZoneSet) Remove(z Zone) {
	for i := range s.Zones {
		if s.Zones[i] == z {
			s.Zones = append(s.Zones[:i], s.Zones[i+1:]...)
			return
		}
	}
}

// Clear removes all zones.
func (s *ZoneSet) Clear() {
	s.Zones = nil
}

// ZonesFor returns the enabled zones that apply to the given side.
func (s *ZoneSet) ZonesFor(side Side) []Zone {
	var out []Zone
	for _, z := range s.Zones {
		if z.Enabled && (z.AppliesTo == side || z.AppliesTo == SideBoth) {
			out = append(out, z)
		}
	}
	return out
}

// PresetPageNumberBottom is a preset for a page number at bottom center.
func PresetPageNumberBottom() Zone {
	z, _ := NewZone(0.4, 0.95, 0.2, 0.05, "Page Number (Bottom)", SideBoth)
	return z
}

// PresetPageNumberBottomRight is a preset for a page number at bottom right.
func PresetPageNumberBottomRight() Zone {
	z, _ := NewZone(0.85, 0.95, 0.15, 0.05, "Page Number (Bottom Right)", SideBoth)
	return z
}

// PresetHeader is a preset for the header area.
func PresetHeader() Zone {
	z, _ := NewZone(0.0, 0.0, 1.0, 0.08, "Header", SideBoth)
	return z
}

// PresetFooter is a preset for the footer area.
func PresetFooter() Zone {
	z, _ := NewZone(0.0, 0.92, 1.0, 0.08, "Footer", SideBoth)
	return z
}

// PresetSlideNumber is a preset for a slide number at bottom right.
func PresetSlideNumber() Zone {
	z, _ := NewZone(0.9, 0.93, 0.1, 0.07, "Slide Number", SideBoth)
	return z
}
