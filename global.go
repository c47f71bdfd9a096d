package pathobj

///////////////////////////////////////////////////////////////////////////////
// Global Singleton and Package Functions
///////////////////////////////////////////////////////////////////////////////

var _gPathCache *PathCache = nil

func init() {
	_gPathCache = NewPathCache(PathCacheOpts{MaxEntries: DefaultPathCacheSize})
}

// Package-level functions that work on bare containers through the package
// path cache. They always raise on missing values.

// DefaultPathCache returns the cache used by Objects created without one.
func DefaultPathCache() *PathCache {
	return _gPathCache
}

// Get returns the value at path in data.
func Get(data any, path string) (any, error) {
	return New(data, ObjectOpts{}).Get(path)
}

// Set stores value at path in data and returns the root to keep using,
// which differs from data when data is nil or a sequence that grew.
func Set(data any, path string, value any) (any, error) {
	o := New(data, ObjectOpts{})
	if _, err := o.Set(path, value); err != nil {
		return data, err
	}
	return o.Data(), nil
}

// Delete removes the value at path in data and returns the root to keep
// using, which differs from data when data is a sequence that shrank.
func Delete(data any, path string) (any, error) {
	o := New(data, ObjectOpts{})
	if err := o.Delete(path); err != nil {
		return data, err
	}
	return o.Data(), nil
}

// Has reports whether path resolves in data.
func Has(data any, path string) bool {
	return New(data, ObjectOpts{}).Has(path)
}
