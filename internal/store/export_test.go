package store

// Cheap scrypt parameters so tests do not spend seconds in the KDF.
func (s *SnapshotFileStore) UseTestParams() { s.n, s.r, s.p = 1<<10, 8, 1 }
