package feeds

import "github.com/papo1011/orrery"

// MaxSeededAsteroids caps how many asteroids the NEO feed may add to a view.
const MaxSeededAsteroids = 200

// SeedBelt returns the belt with one asteroid per near-Earth object of the snapshot,
// named after it. An empty snapshot leaves the belt unchanged.
func SeedBelt(belt orrery.AsteroidBelt, s Snapshot) orrery.AsteroidBelt {
	if len(s.NEOs) == 0 {
		return belt
	}
	n := len(s.NEOs)
	if n > MaxSeededAsteroids {
		n = MaxSeededAsteroids
	}
	belt.Count = n
	belt.Names = make([]string, n)
	for i := 0; i < n; i++ {
		belt.Names[i] = s.NEOs[i].Name
	}
	return belt
}
