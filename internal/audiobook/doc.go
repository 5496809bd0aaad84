// Package audiobook holds the domain values shared by every conversion
// component: the source container, the metadata record, chapters, and the
// closed set of output codec profiles.
package audiobook
