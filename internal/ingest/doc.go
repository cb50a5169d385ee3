// Package ingest turns normalized observation files dropped in the inbox into
// bulletins.
//
// A bulletin file is named <source>_<YYYYMMDDTHHMMSS>.csv or .xlsx, the
// timestamp being the publish time in UTC. Its rows carry the columns
// entity, cycle, date, field and value; cycle may be blank and date may be a
// full ISO date or a partial M/D label.
//
// Discover lists the files not yet merged according to the per-source
// watermark, oldest first, so a restart catches up on what it missed. The
// Watcher runs a callback whenever new files settle in the inbox.
package ingest
