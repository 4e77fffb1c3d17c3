// Package core compiles declarative scenarios into running narrativex engines.
//
// Compile validates a primitives.ScenarioConfig and builds it through
// narrativex.ScriptBuilder: timeline scenarios become a TimelineEngine, chain
// scenarios a ChainEngine. Built-in cue actions (flags, text, typing, counters, log
// lines) are applied directly; any other action name is delegated to the configured
// ActionRunner. When expressions on cues and steps go through the GuardEvaluator and
// are evaluated against the live inputs as the cue or step fires.
//
// Dependencies: the narrativex root package and internal/primitives.
package core
