// Package utils provides loose scalar coercion helpers.
//
// Change-feed payloads arrive as generic JSON (map[string]any) and the
// backing store occasionally represents numerics as strings (price columns
// migrated from text, JSON numbers decoded as float64). These helpers
// normalize such values without panicking on unexpected types.
package utils
