// Package videos persists uploaded video records and handles upload
// ingestion: format validation, duration limits, probing, and storage
// placement.
package videos
