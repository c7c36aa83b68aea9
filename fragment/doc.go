// Package fragment defines the cached content unit and its byte
// serialization.
//
// A Fragment is the rendered output of one cache-eligible region. The
// Formatter round-trips fragments through a byte-oriented store losslessly:
// Deserialize(Serialize(f)) always reproduces f exactly.
package fragment
