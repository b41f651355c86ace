package common

// SnapshotName is the name of the single durable-storage entry that holds the
// serialized table set of the local relational store.
const SnapshotName = "agentdesk_store"
