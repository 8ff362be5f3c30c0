// Package kanim plays skeletal 2D sprite animations on [Ebitengine].
//
// An animation is split across three kinds of asset. A bank holds named
// animations, each a list of frames placing symbol elements with an affine
// matrix. A build holds the images of every symbol, packed into atlas pages.
// A command list, edited live by a tool, picks the bank, build and animation
// and layers overrides, visibility rules and tints on top.
//
// # Quick start
//
// [Engine] bundles everything and satisfies [ebiten.Game]:
//
//	engine, err := kanim.NewEngine(loader, kanim.DefaultConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//	s := engine.State()
//	s.Append(kanim.SetBank{Bank: "wilson"})
//	s.Append(kanim.SetBuild{Build: "wilson"})
//	s.Append(kanim.PlayAnimation{Anim: "idle", Loop: true})
//	ebiten.RunGame(engine)
//
// To embed the animation in an existing game, call [Engine.Update] and
// [Engine.Draw] from your own loop, or drive a [State] directly with
// [State.Advance], [State.Compose] and [Submit].
//
// # Loading
//
// A [Loader] fetches raw assets from wherever they live. [Assets] caches
// them: requests never block, each key is fetched once, and completions are
// handed back on the caller's goroutine by [Assets.Poll]. A missing asset
// resolves to [ErrNotFound] and is simply not drawn; a transport failure
// resolves to [ErrTransport] and stays failed until [Assets.RetryFailed].
//
// # Commands
//
// Commands are plain structs such as [SetBank], [OverrideSymbol] or
// [SetMultColour]. [ParseCommand] builds one from an editor's name and
// argument list. For every query the last enabled command wins, so
// disabling a command reveals the previous one. Each mutation of a [State]
// rebuilds only what the command's group can affect and raises an [Event].
//
// # Drawing
//
// [State.Compose] resolves the current frame into [DrawCommand] values:
// which atlas, which sub-rectangle, the full transform and the tint. [View]
// supplies the outer placement (zoom, rotation, mirroring, pan) and can fit
// or tween to the clip's bounds (via [gween]). ECS integration lives in the
// kanim/ecs nested module (via a [Donburi] adapter).
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
// [Donburi]: https://github.com/yohamta/donburi
package kanim
