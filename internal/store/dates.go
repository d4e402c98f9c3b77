package store

import "time"

// dateKey binds DATE columns as plain YYYY-MM-DD strings. Binding a time.Time
// would go through the session timezone and can land on the neighboring day;
// the string form compares the calendar day the caller actually meant.
func dateKey(t time.Time) string { return t.Format("2006-01-02") }
