// Package openai implements the extraction sensor against an OpenAI-style
// chat completions API.
//
// The adapter is the only component that talks to a remote model, and it
// treats the reply as hostile: the payload is schema-validated, field names
// outside the tracked set are dropped, candidate lists are capped, and every
// evidence excerpt is re-located in the submission text before anything
// reaches normalization. Malformed output degrades to the all-absent result;
// only transport-level failures surface as errors, and the pipeline recovers
// those too.
//
// Identical submissions within the cache TTL reuse the previous result
// instead of spending another model call. Cached results are shared, which is
// safe because extraction results are never mutated downstream.
package openai
