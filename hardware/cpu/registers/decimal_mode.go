package registers

// AddDecimal and SubtractDecimal implement BCD arithmetic for ADC/SBC when
// the decimal flag is set. They return carry, zero, overflow and sign in
// addition to updating the register, since decimal flag updates diverge
// from the binary-mode rules the plain Add/Subtract methods encode.
//
// Appendix A of the following was used as a reference:
//
// http://www.6502.org/tutorials/decimal_mode.html
//
// Unlike the NMOS 6502, the 65C02 derives N and Z from the final
// decimal-corrected result rather than from an intermediate binary sum —
// the NMOS quirk where those flags reflect a partially- or un-adjusted
// value does not apply here. AddDecimal also derives V from that final
// result; SubtractDecimal takes C and V from the equivalent binary
// subtraction.

// AddDecimal performs decimal-mode addition equivalent to ADC with D set.
func (r *Register) AddDecimal(val uint8, carry bool) (rcarry, rzero, roverflow, rsign bool) {
	// Seq.1 (Appendix A of 6502.org)

	al := (r.value & 0x0f) + (val & 0x0f)
	if carry {
		al++
	}
	if al >= 0x0a {
		al = ((al + 0x06) & 0x0f) + 0x10
	}

	a := (uint16(r.value) & 0xf0) + (uint16(val) & 0xf0) + uint16(al)
	if a >= 0xa0 {
		a += 0x60
	}

	rcarry = a >= 0x100
	result := uint8(a)

	roverflow = ((r.value ^ result) & (val ^ result) & 0x80) != 0
	rsign = result&0x80 == 0x80
	rzero = result == 0

	r.value = result

	return rcarry, rzero, roverflow, rsign
}

// SubtractDecimal performs decimal-mode subtraction equivalent to SBC with D
// set.
func (r *Register) SubtractDecimal(val uint8, carry bool) (rcarry, rzero, roverflow, rsign bool) {
	br := *r
	rcarry, roverflow = br.Subtract(val, carry)

	// Seq.3 (Appendix A of 6502.org)

	al := (int16(r.value) & 0x0f) - (int16(val) & 0x0f) - 1
	if carry {
		al++
	}
	if al < 0x00 {
		al = ((al - 0x06) & 0x0f) - 0x10
	}

	a := (int16(r.value) & 0xf0) - (int16(val) & 0xf0) + al
	if a < 0x00 {
		a -= 0x60
	}

	result := uint8(a)
	rsign = result&0x80 == 0x80
	rzero = result == 0

	r.value = result

	return rcarry, rzero, roverflow, rsign
}
