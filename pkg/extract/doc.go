// Package extract defines the contract between the pipeline and the untrusted
// extraction sensor.
//
// A sensor proposes candidate values for a fixed set of tracked fields, each
// with a confidence score and a claimed verbatim excerpt of the raw text. The
// pipeline never trusts sensor output directly: evidence excerpts are
// re-located in the source by exact substring search, the reserved UNKNOWN
// sentinel is treated as "no value", and a sensor that fails its contract is
// degraded to a zero-confidence result rather than failing the run.
package extract
