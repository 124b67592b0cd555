// Package ndjson decodes newline-delimited JSON and streams line-oriented output in
// fixed-size batches.
//
// Decoded lines become Value, a tagged type over null, bool, number, string, array,
// and object. Objects keep the member order the producer wrote, so a record prints
// back the way it arrived.
//
// # Decoding
//
//	records, err := ndjson.DecodeString(out)
//	for _, r := range records {
//	    version, _ := r.GetString("version")
//	}
//
// Decoding is all or nothing: one malformed line fails the call with a *SyntaxError
// naming the line.
//
// # Batching
//
// Batches and RecordBatches read a live stream without buffering it whole:
//
//	err := ndjson.Batches(rc, 500, func(batch []string) error {
//	    return load(batch)
//	})
//
// Every batch but the last holds exactly the requested number of lines. The stream is
// closed exactly once on every exit path.
package ndjson
