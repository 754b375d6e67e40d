package models

// IngestDocument is one document submitted on the ingest stream,
// destined for the fingerprint corpus
type IngestDocument struct {
	DocID  string `json:"docId"`
	Title  string `json:"title"`
	Source string `json:"source"`
	Text   string `json:"text"`
}

// FingerprintRecord is the provenance stored per chunk fingerprint
type FingerprintRecord struct {
	DocID  string `json:"docId"`
	Title  string `json:"title"`
	Source string `json:"source"`
}
