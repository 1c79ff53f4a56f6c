// Package s3 retrieves interview recordings from object storage and parses
// interview identity (user id and question number) out of object keys.
package s3
