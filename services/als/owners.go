package als

import (
	"luxd/types"
)

// AcquireOwner grants an external requester control over the hardware
// thresholds. On the 0->1 transition the band is forced open so the
// requester's first read is guaranteed to be delivered.
func (s *Service) AcquireOwner(name string) (int, error) {
	n, err := s.owners.Acquire(name)
	if err != nil {
		return n, err
	}
	if n == 1 {
		if err := s.armer.Arm(types.ForceInterrupt()); err != nil {
			s.log.Warn("forced interrupt band failed", "err", err)
		}
	}
	return n, nil
}

// ReleaseOwner returns control. When the last owner leaves, the cached
// band is restored so reconciliation resumes where it left off.
func (s *Service) ReleaseOwner(name string) (int, error) {
	n, err := s.owners.Release(name)
	if err != nil {
		return n, err
	}
	if n == 0 {
		if err := s.armer.Arm(types.RestoreCached()); err != nil {
			s.log.Warn("threshold restore failed", "err", err)
		}
	}
	return n, nil
}

// OwnerVanished handles a requester whose process died while holding
// the sensor. Unknown names are ignored; they never acquired.
func (s *Service) OwnerVanished(name string) {
	if !s.owners.Holds(name) {
		return
	}
	n, _ := s.owners.Release(name)
	s.log.Info("sensor owner vanished", "name", name, "remaining", n)
	if n == 0 {
		if err := s.armer.Arm(types.RestoreCached()); err != nil {
			s.log.Warn("threshold restore failed", "err", err)
		}
	}
}
