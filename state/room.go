package state

// Room is the set of devices sharing a location, in the order they were added.
type Room struct {
	Name    string
	Devices []Device
}

// GroupByLocation builds rooms in order of first appearance. Devices
// without a location are left out.
func GroupByLocation(devices []Device) []Room {
	var rooms []Room
	index := make(map[string]int)
	for _, d := range devices {
		if d.Location() == "" {
			continue
		}
		i, ok := index[d.Location()]
		if !ok {
			i = len(rooms)
			index[d.Location()] = i
			rooms = append(rooms, Room{Name: d.Location()})
		}
		rooms[i].Devices = append(rooms[i].Devices, d)
	}
	return rooms
}

// AnyOn reports whether at least one device in the room is on.
func (r Room) AnyOn() bool {
	for _, d := range r.Devices {
		if d.Status() == ON {
			return true
		}
	}
	return false
}
