package calendar

// National and Distrito Federal holidays
var builtinHolidays = []Holiday{
	{Date: "2025-01-01", Name: "Confraternização Universal"},
	{Date: "2025-04-18", Name: "Paixão de Cristo"},
	{Date: "2025-04-21", Name: "Tiradentes / Aniversário de Brasília"},
	{Date: "2025-05-01", Name: "Dia do Trabalho"},
	{Date: "2025-09-07", Name: "Independência do Brasil"},
	{Date: "2025-10-12", Name: "Nossa Senhora Aparecida"},
	{Date: "2025-11-02", Name: "Finados"},
	{Date: "2025-11-15", Name: "Proclamação da República"},
	{Date: "2025-11-20", Name: "Dia Nacional de Zumbi e da Consciência Negra"},
	{Date: "2025-11-30", Name: "Dia do Evangélico"},
	{Date: "2025-12-25", Name: "Natal"},

	{Date: "2026-01-01", Name: "Confraternização Universal"},
	{Date: "2026-04-03", Name: "Paixão de Cristo"},
	{Date: "2026-04-21", Name: "Tiradentes / Aniversário de Brasília"},
	{Date: "2026-05-01", Name: "Dia do Trabalho"},
	{Date: "2026-09-07", Name: "Independência do Brasil"},
	{Date: "2026-10-12", Name: "Nossa Senhora Aparecida"},
	{Date: "2026-11-02", Name: "Finados"},
	{Date: "2026-11-15", Name: "Proclamação da República"},
	{Date: "2026-11-20", Name: "Dia Nacional de Zumbi e da Consciência Negra"},
	{Date: "2026-11-30", Name: "Dia do Evangélico"},
	{Date: "2026-12-25", Name: "Natal"},
}

// Pontos facultativos: optional days off for administrative staff
var builtinOptionalDays = []Holiday{
	{Date: "2025-03-03", Name: "Carnaval"},
	{Date: "2025-03-04", Name: "Carnaval"},
	{Date: "2025-03-05", Name: "Quarta-feira de Cinzas"},
	{Date: "2025-06-19", Name: "Corpus Christi"},
	{Date: "2025-10-28", Name: "Dia do Servidor Público"},
	{Date: "2025-12-24", Name: "Véspera de Natal"},
	{Date: "2025-12-31", Name: "Véspera de Ano Novo"},

	{Date: "2026-02-16", Name: "Carnaval"},
	{Date: "2026-02-17", Name: "Carnaval"},
	{Date: "2026-02-18", Name: "Quarta-feira de Cinzas"},
	{Date: "2026-06-04", Name: "Corpus Christi"},
	{Date: "2026-10-28", Name: "Dia do Servidor Público"},
	{Date: "2026-12-24", Name: "Véspera de Natal"},
	{Date: "2026-12-31", Name: "Véspera de Ano Novo"},
}

// DefaultHolidays returns an oracle with the built-in holiday table
func DefaultHolidays() *HolidayOracle {
	o, err := NewHolidayOracle(builtinHolidays...)
	if err != nil {
		panic(err)
	}
	return o
}

// DefaultOptionalDays returns an oracle with the built-in pontos facultativos
func DefaultOptionalDays() *HolidayOracle {
	o, err := NewHolidayOracle(builtinOptionalDays...)
	if err != nil {
		panic(err)
	}
	return o
}
