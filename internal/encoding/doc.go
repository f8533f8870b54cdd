// Package encoding implements the column encodings of the snapshot body.
//
// Numeric columns are stored with the XOR float compression of Facebook's Gorilla paper
// (https://www.vldb.org/pvldb/vol8/p1816-teller.pdf). Measured data typically repeats values
// or changes only the low mantissa bits between rows, and both cases take a few bits per
// value instead of eight bytes. The general-purpose codec of the snapshot then runs over the
// encoded body.
package encoding
