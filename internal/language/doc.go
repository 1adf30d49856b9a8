// Package language normalizes the language labels found in subtitle headers
// and container metadata into golang.org/x/text language tags.
//
// Demuxers call Parse (or ExtractFromTags) when they build a Track so every
// MediaInfo carries a canonical tag regardless of whether the source wrote
// "en", "eng", "English" or a full BCP 47 tag.
package language
