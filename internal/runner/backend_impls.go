package runner

// RadiosityBackend approximates a single-bounce direct-illuminance
// solve. Named for the multi-bounce radiosity family it stands in for;
// it reports the simplification plainly via UnsupportedFeatures rather
// than silently under-computing interreflected light.
type RadiosityBackend struct{}

func (RadiosityBackend) Name() string { return "radiosity" }

func (b RadiosityBackend) Run(ctx CancellationToken, in Input) (Output, error) {
	return sharedSampler{
		backendName: "radiosity",
		solverName:  "direct_illuminance_v1",
		assumptions: []string{
			"point-source photometry (no near-field or extended-source effects)",
			"opaque surfaces are fully absorptive beyond their single BVH occlusion test",
		},
		unsupported: []string{"interreflected (bounced) illuminance"},
	}.run(ctx, in)
}

// DaylightBackend evaluates illuminance contributed only by daylight
// apertures (openings authored as IsDaylightAperture), modeled as
// point sources at each opening's centroid — a stand-in for a full sky
// model.
type DaylightBackend struct{}

func (DaylightBackend) Name() string { return "daylight" }

func (b DaylightBackend) Run(ctx CancellationToken, in Input) (Output, error) {
	return sharedSampler{
		backendName:    "daylight",
		solverName:     "daylight_factor_v1",
		sourceResolver: resolveDaylightSources,
		assumptions: []string{
			"CIE overcast sky approximated as a fixed-luminance point source per aperture",
		},
		unsupported: []string{"clear-sky and sun-position-dependent daylight factor"},
	}.run(ctx, in)
}

// EmergencyBackend evaluates egress/emergency illuminance: the same
// point-source model, relying on each luminaire's authored
// flux_multiplier to express emergency battery derating.
type EmergencyBackend struct{}

func (EmergencyBackend) Name() string { return "emergency" }

func (b EmergencyBackend) Run(ctx CancellationToken, in Input) (Output, error) {
	return sharedSampler{
		backendName: "emergency",
		solverName:  "emergency_egress_v1",
		assumptions: []string{
			"emergency luminaires run at their authored flux_multiplier (battery derating), not full mains output",
		},
		unsupported: []string{"fault-mode (single-luminaire-outage) egress recalculation"},
	}.run(ctx, in)
}
