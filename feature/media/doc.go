// Package media uploads catalog imagery (brand logos, color shots,
// banners) to object storage and hands back the public URL that the
// back office then writes into the store.
package media
