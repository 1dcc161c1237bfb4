// Package services implements the driving ports over the driven ones:
// the ingestion pipeline, retrieval and question answering, summaries,
// store management, status reporting, and the watch loop.
package services
