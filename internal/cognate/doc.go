// Package cognate provides the judges that decide whether a word in a
// studied language resembles a word in a language the learner already
// knows. Words judged cognate count as known with less evidence.
package cognate
