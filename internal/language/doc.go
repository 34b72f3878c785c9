// Package language maps library directory names and language codes to the
// ISO 639-2 codes the remote TTS engines accept, and records which codes the
// VITS engine supports.
package language
