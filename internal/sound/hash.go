package sound

import "hash/fnv"

// ID identifies a sound by the hash of its name.
type ID uint32

// Hash maps a sound name to its id (FNV-1a, 32 bit).
func Hash(name string) ID {
	h := fnv.New32a()
	h.Write([]byte(name))
	return ID(h.Sum32())
}

// Gunshot is the sound every armed mega posts when firing.
var Gunshot = Hash("gunshot")
