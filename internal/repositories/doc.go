// Package repositories implements SQLite persistence for the personal library.
//
// Key Implementations:
//   - [SavedTrackRepository] : catalog tracks saved to the library, unique per catalog id
//   - [LocalPlaylistRepository] : user-defined playlists holding ordered catalog track ids
//
// Both implement [models.Repository]. IDs are UUIDs from [shared.GenerateID]; rows are hard
// deleted and local playlist membership cascades with its playlist.
package repositories
