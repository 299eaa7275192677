// Package batch assembles input records into a single publish
// request. Messages are grouped by topic; topics keep the order in
// which they first appear and messages keep their input order within
// their topic.
package batch
