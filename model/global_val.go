package model

// 0 degC in kelvin
const ZeroCelsius = 273.15

// Parameter names
const (
	SolidConductivity   = "Solid phase conductivity [W.m-1.K-1]"
	LiquidConductivity  = "Liquid phase conductivity [W.m-1.K-1]"
	SolidDensity        = "Solid phase density [kg.m-3]"
	LiquidDensity       = "Liquid phase density [kg.m-3]"
	SolidHeatCapacity   = "Solid phase specific heat capacity [J.kg-1.K-1]"
	LiquidHeatCapacity  = "Liquid phase specific heat capacity [J.kg-1.K-1]"
	LatentHeat          = "Latent heat [J.kg-1]"
	MeltingTemperature  = "Melting temperature [K]"
	BoundaryTemperature = "Boundary temperature [K]"
	Radius              = "Radius [m]"
	InitialEnthalpy     = "Initial enthalpy [J.m-3]"

	CapsuleRadius           = "Capsule radius [m]"
	PipeLength              = "Pipe length [m]"
	Porosity                = "Porosity"
	HeatTransferCoefficient = "Heat transfer coefficient [W.m-2.K-1]"
	HTFDensity              = "Heat transfer fluid density [kg.m-3]"
	HTFHeatCapacity         = "Heat transfer fluid specific heat capacity [J.kg-1.K-1]"
	HTFVelocity             = "Heat transfer fluid velocity [m.s-1]"
	InletTemperature        = "Inlet temperature [K]"
	InitialTemperature      = "Initial temperature [K]"
)

// Variable names
const (
	TimeS    = "Time [s]"
	TimeMin  = "Time [min]"
	XM       = "x [m]"
	RM       = "r [m]"
	RMM      = "r [mm]"
	Enthalpy = "Enthalpy [J.m-3]"
	Temp     = "Temperature [K]"

	LiquidFraction    = "Liquid fraction"
	InterfacePosition = "Interface position [m]"

	HTFTemperature        = "Heat transfer fluid temperature [K]"
	HTFTemperatureC       = "Heat transfer fluid temperature [degC]"
	PCMTemperature        = "Phase-change material temperature [K]"
	PCMTemperatureC       = "Phase-change material temperature [degC]"
	PCMEnthalpy           = "Phase-change material enthalpy [J.m-3]"
	PCMSurfaceTemperature = "Phase-change material surface temperature [K]"
	PCMSurfaceTempC       = "Phase-change material surface temperature [degC]"
	OutletTemperature     = "Outlet temperature [K]"
	OutletTemperatureC    = "Outlet temperature [degC]"
	StateOfCharge         = "X-averaged state of charge"
	StoredEnergy          = "Stored energy per unit area [J.m-2]"
	ConservationError     = "Relative error in energy conservation [%]"
)
