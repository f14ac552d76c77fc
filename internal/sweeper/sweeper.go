package sweeper

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/kbasweep/internal/dims"
	"github.com/cpmech/kbasweep/internal/threadteam"
)

// Sweeper owns the per-rank scratch spec.md §3 assigns it: the three face
// buffers, the transform matrices, and per-thread local work arrays. It is
// immutable once built except for the face-buffer contents, which the
// sweep loop and the boundary setters mutate in place between steps.
type Sweeper struct {
	cfg    Config
	aFromM []float64 // nm x na x noctant, dims.AFromMIndex
	mFromA []float64 // na x nm x noctant, dims.MFromAIndex

	FaceXY []float64
	FaceXZ []float64
	FaceYZ []float64

	faceXYView dims.FaceView
	faceXZView dims.FaceView
	faceYZView dims.FaceView

	scratch []*threadScratch // one per (e,octant,y,z) thread, Geometry.Total() long
	team    *threadteam.Team
}

// New validates cfg and allocates a Sweeper's owned buffers: face buffers,
// transform matrices (copied in, immutable thereafter per spec.md §3) and
// per-thread scratch (spec.md §5, "allocated once at sweeper
// construction").
func New(cfg Config, aFromM, mFromA []float64) *Sweeper {
	cfg.Validate()

	wantAFromM := dims.NM * cfg.DimsB.NA * dims.NOctant
	if len(aFromM) != wantAFromM {
		chk.Panic("a_from_m must have length %d (nm*na*noctant), got %d", wantAFromM, len(aFromM))
	}
	wantMFromA := cfg.DimsB.NA * dims.NM * dims.NOctant
	if len(mFromA) != wantMFromA {
		chk.Panic("m_from_a must have length %d (na*nm*noctant), got %d", wantMFromA, len(mFromA))
	}

	s := &Sweeper{
		cfg:    cfg,
		aFromM: append([]float64(nil), aFromM...),
		mFromA: append([]float64(nil), mFromA...),
		team:   threadteam.NewTeam(cfg.Geometry),
	}

	s.faceXYView = dims.FaceView{NA: cfg.DimsB.NA, NOctantPerBlock: cfg.NOctantPerBlock, NA1: cfg.DimsB.NCellX, NA2: cfg.DimsB.NCellY, NE: cfg.DimsB.NE}
	s.faceXZView = dims.FaceView{NA: cfg.DimsB.NA, NOctantPerBlock: cfg.NOctantPerBlock, NA1: cfg.DimsB.NCellX, NA2: cfg.DimsB.NCellZ, NE: cfg.DimsB.NE}
	s.faceYZView = dims.FaceView{NA: cfg.DimsB.NA, NOctantPerBlock: cfg.NOctantPerBlock, NA1: cfg.DimsB.NCellY, NA2: cfg.DimsB.NCellZ, NE: cfg.DimsB.NE}

	s.FaceXY = make([]float64, s.faceXYView.Size())
	s.FaceXZ = make([]float64, s.faceXZView.Size())
	s.FaceYZ = make([]float64, s.faceYZView.Size())

	n := cfg.Geometry.Total()
	s.scratch = make([]*threadScratch, n)
	for i := range s.scratch {
		s.scratch[i] = newThreadScratch(cfg.Geometry)
	}

	return s
}

// Config returns the sweeper's configuration.
func (s *Sweeper) Config() Config { return s.cfg }

func (s *Sweeper) threadIndex(id threadteam.ThreadID) int {
	g := s.cfg.Geometry
	i := id.E
	i = i*g.NThreadOctant + id.Octant
	i = i*g.NThreadY + id.Y
	i = i*g.NThreadZ + id.Z
	return i
}
