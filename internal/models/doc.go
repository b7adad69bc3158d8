// Package models defines the catalog records and library entities for muzik.
//
// The package contains two categories of types:
//
// 1. Catalog records: flat, immutable values normalized from catalog service payloads
//   - [Track] : Song metadata with artists, album, duration and popularity
//   - [Album] : Album metadata with release info and track count
//   - [Artist] : Artist metadata with genres and follower count
//   - [Playlist] : Playlist metadata with owner and track count
//
// Every record implements [Record], so menus and exporters can treat search results uniformly.
// [Page] carries the paging cursor fields returned alongside a list of records.
//
// 2. Library entities: rows in the local SQLite library
//   - [SavedTrack] : A track saved to the personal library
//   - [LocalPlaylist] : A user-defined playlist of saved tracks
//
// Library entities implement the [Model] interface, and the Repository[T] interface defines
// standard CRUD operations for database access.
package models
