// Package history records completed pipeline runs in a SQLite database so
// past batches can be reviewed with `casper history`. It is an audit log,
// not a checkpoint: nothing in it influences future runs.
package history
