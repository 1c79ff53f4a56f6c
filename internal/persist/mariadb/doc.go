// Package mariadb writes rubric evaluation rows to the shared interview
// database consumed by the hiring platform.
package mariadb
