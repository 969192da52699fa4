// Package address parses and represents closed address intervals over the
// 32-bit address space used by hex-file segments.
//
// A Range is always non-empty: start <= end, both inclusive. Two source
// forms are accepted from external input, "start-end" and "start,length",
// and both normalize to the same internal representation.
//
// Example:
//
//	r, err := address.ParseRange("0x1000-0x11FF")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(r.Length()) // 512
package address
