// Package vimgolf finds the shortest sequence of editor commands that turns
// one editor state into another.
//
// The engine is a best-first (A*) search with speculative parallel expansion:
//
//   - Search: run the dispatcher to completion and get a Result.
//   - OpenSet: the deduplicating priority frontier the dispatcher pops from.
//   - Incumbent: the shortest complete path so far and the in-flight counter
//     that together decide when the search may stop.
//
// The engine knows nothing about text editing. What a command does is decided
// by an Oracle session (one per worker), and scoring, filtering and the goal
// test are pluggable policies (Heuristic, Pruning, Neighbors, GoalTest). The
// returned path is only guaranteed shortest when the Heuristic never
// overestimates.
package vimgolf
