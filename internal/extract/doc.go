// Package extract unpacks downloaded .osz beatmap archives.
//
// Archives are discovered directly under the download directory by
// case-insensitive extension match and extracted each into a sibling
// directory named after the archive stem. Corrupt archives are skipped
// silently; extraction failure is never fatal to the batch. Optional
// deletion of the originals happens in a second pass after all
// extraction has finished.
package extract
