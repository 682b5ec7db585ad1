// Package rewrite applies descriptor-derived display names to the video
// records of a structure document.
package rewrite
