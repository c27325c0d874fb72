// Package material describes panel materials and derives their plate stiffness.
//
// Two material shapes are supported:
//
//   - [Isotropic]: a homogeneous plate (density, modulus, Poisson ratio, thickness)
//   - [Laminate]: an ordered stack of orthotropic [Ply] records
//
// Laminates are reduced to classical laminate theory's [ABD] matrix. The
// matrix is computed on first use and cached on the laminate; editing a ply
// through [Laminate.SetPly] or [Laminate.AddPly] drops the cached value.
//
// # Units
//
// Thicknesses are millimetres, moduli pascals, densities kg/m³. Derived
// stiffness blocks are SI (A in N/m, B in N, D in N·m).
//
// # Thread Safety
//
// [Laminate.ABD] may be called from many goroutines; the matrix is computed at
// most once per edit generation. Ply edits must not race with readers.
package material
