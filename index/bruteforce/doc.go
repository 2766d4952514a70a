// Package bruteforce provides a dominance index that answers nearest-dominator
// queries by scanning all points. It is the reference the kd-tree is checked
// against and supports a compact binary format for persistence.
package bruteforce
