package digbridge

// Disposable is implemented by resources that need cleanup.
// Scopes, containers and resolved instances that implement it are closed
// when their owner is closed.
//
// Example:
//
//	type DatabaseConnection struct {
//	    conn *sql.DB
//	}
//
//	func (dc *DatabaseConnection) Close() error {
//	    return dc.conn.Close()
//	}
type Disposable interface {
	Close() error
}

// Tracker is implemented by scopes that take ownership of instances built
// while they are active. Containers hand every instance they construct for a
// scope to its Tracker so the instance is closed together with the scope.
type Tracker interface {
	Track(instance any)
}
