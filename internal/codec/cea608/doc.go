// Package cea608 decodes CEA-608 closed caption byte pairs into text cues.
//
// Packet payloads are sequences of cc_data byte pairs for a single caption
// channel, parity bits included. A cue covers one caption as it appears on
// screen: it starts when the text is first displayed and ends at the packet
// carrying the carriage return, end of caption or erase that replaces it.
package cea608
